package cmd

import (
	"log/slog"

	"packing/internal/adapters/out/postgres"
	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/application/usecases/queries"
	"packing/internal/core/ports"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	readyNotifier ports.ReadyNotifier
	logger        *slog.Logger
}

func NewCompositionRoot(
	_ Config,
	gormDB *gorm.DB,
	readyNotifier ports.ReadyNotifier,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		readyNotifier: readyNotifier,
		logger:        logger,
	}
}

func (c *CompositionRoot) CreateStartOrResumeSessionCommandHandler() commands.StartOrResumeSessionCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartOrResumeSessionCommandHandler(f)
}

func (c *CompositionRoot) CreateTakeoverOrdersCommandHandler() commands.TakeoverOrdersCommandHandler {
	var f commands.SessionUoWFactory = FuncSessionUoWFactory(func() commands.SessionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTakeoverOrdersCommandHandler(f)
}

func (c *CompositionRoot) CreateTouchActivityCommandHandler() commands.TouchActivityCommandHandler {
	var f commands.SessionUoWFactory = FuncSessionUoWFactory(func() commands.SessionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTouchActivityCommandHandler(f)
}

func (c *CompositionRoot) CreateMutatePackingRecordCommandHandler() commands.MutatePackingRecordCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMutatePackingRecordCommandHandler(f, c.readyNotifier, c.logger)
}

func (c *CompositionRoot) CreateEndSessionCommandHandler() commands.EndSessionCommandHandler {
	var f commands.SessionUoWFactory = FuncSessionUoWFactory(func() commands.SessionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewEndSessionCommandHandler(f)
}

func (c *CompositionRoot) CreateRunTimeoutSweepCommandHandler() commands.RunTimeoutSweepCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRunTimeoutSweepCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateGetActiveSessionsQueryHandler() queries.GetActiveSessionsQueryHandler {
	return queries.NewGetActiveSessionsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPausedOrdersQueryHandler() queries.GetPausedOrdersQueryHandler {
	return queries.NewGetPausedOrdersQueryHandler(c.gormDB)
}

type FuncSessionUoWFactory func() commands.SessionUoW

func (f FuncSessionUoWFactory) Create() commands.SessionUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
