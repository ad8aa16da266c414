package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gw-payment-engine/internal/bank"
	"gw-payment-engine/internal/config"
	"gw-payment-engine/internal/db"
	"gw-payment-engine/internal/events"
	"gw-payment-engine/internal/kafka"
	"gw-payment-engine/internal/models"
	"gw-payment-engine/internal/money"
	"gw-payment-engine/internal/rates"
	"gw-payment-engine/internal/service"
	"gw-payment-engine/internal/simulation"
	"gw-payment-engine/internal/storage/mongodb"
	"gw-payment-engine/internal/storage/postgres"
	"gw-payment-engine/pkg/logger"
)

type App struct {
	log     *slog.Logger
	logFile *logger.LoggerWithFile
	cfg     *config.Config
	pool    *pgxpool.Pool

	rates      rates.Source
	dispatcher *events.Dispatcher
	directory  *bank.MapDirectory
	processors []*service.PaymentProcessor
	generators []*simulation.Generator
}

func NewApp() (*App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации конфига: %w", err)
	}

	loggerWithFile, err := logger.NewLoggerWithFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := loggerWithFile.Logger
	log.Info("конфигурация загружена",
		slog.Int("workers_per_bank", cfg.Engine.WorkersPerBank),
		slog.Duration("processing_latency", cfg.Engine.ProcessingLatency),
		slog.Duration("simulation", cfg.Simulation.Duration),
		slog.String("rates_source", cfg.Rates.Source))

	return &App{
		log:     log,
		logFile: loggerWithFile,
		cfg:     cfg,
	}, nil
}

// BuildRatesLayer freezes the exchange-rate table, either from the built-in
// defaults or from postgres.
func (a *App) BuildRatesLayer(ctx context.Context) error {
	var (
		table *rates.Table
		err   error
	)

	switch a.cfg.Rates.Source {
	case config.RatesSourcePostgres:
		a.log.Info("выполнение миграций базы данных")
		version, err := db.RunMigrations(a.cfg.DB.MigrationURL(), a.cfg.DB.MigrationsPath)
		if err != nil {
			return fmt.Errorf("ошибка выполнения миграций: %w", err)
		}
		a.log.Info("миграции применены", slog.Uint64("version", uint64(version)))

		a.pool, err = db.NewPool(ctx, a.cfg.DB.DSN(), db.DefaultPoolConfig(), a.log)
		if err != nil {
			return fmt.Errorf("не удалось подключиться к базе данных: %w", err)
		}

		table, err = rates.Load(ctx, postgres.NewRateStorage(a.pool))
		if err != nil {
			return fmt.Errorf("не удалось загрузить курсы валют: %w", err)
		}

	default:
		base := rates.DefaultBaseRates()
		if a.cfg.Rates.Static != "" {
			if base, err = rates.ParseBaseRates(a.cfg.Rates.Static); err != nil {
				return err
			}
		}
		if table, err = rates.NewTableFromBase(base); err != nil {
			return err
		}
	}

	a.rates = table
	a.log.Info("курсы валют загружены", slog.Int("pairs", table.Len()))
	return nil
}

// BuildEventsLayer connects the configured event sinks and starts the
// dispatcher in front of them.
func (a *App) BuildEventsLayer(ctx context.Context) error {
	var publishers []events.Publisher

	if a.cfg.Kafka.Enabled {
		a.log.Info("инициализация kafka producer", slog.Any("brokers", a.cfg.Kafka.Brokers))
		producer, err := kafka.NewKafkaProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic, a.log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации kafka: %w", err)
		}
		publishers = append(publishers, producer)
	} else {
		a.log.Info("kafka отключен в конфигурации")
	}

	if a.cfg.Mongo.Enabled {
		m := a.cfg.Mongo
		a.log.Info("подключение к MongoDB", slog.String("database", m.Database))
		storage, err := mongodb.NewAuditStorage(ctx, m.URI, m.Database, m.Collection, m.Timeout)
		if err != nil {
			closeAll(publishers)
			return fmt.Errorf("ошибка подключения к MongoDB: %w", err)
		}
		publishers = append(publishers, storage)
	}

	if len(publishers) == 0 {
		publishers = append(publishers, kafka.NewNoOpProducer(a.log))
	}

	a.dispatcher = events.NewDispatcher(events.DispatcherConfig{
		Buffer:         a.cfg.Events.Buffer,
		Workers:        a.cfg.Events.Workers,
		PublishTimeout: a.cfg.Events.PublishTimeout,
	}, a.log, publishers...)
	return nil
}

func closeAll(publishers []events.Publisher) {
	for _, p := range publishers {
		_ = p.Close()
	}
}

// BuildBankLayer creates one bank per supported currency, provisions their
// accounts and reserves and wires a processor and generators to each.
func (a *App) BuildBankLayer() error {
	if a.rates == nil {
		return errors.New("rates not initialized, call BuildRatesLayer first")
	}
	if a.dispatcher == nil {
		return errors.New("dispatcher not initialized, call BuildEventsLayer first")
	}

	var banks []*bank.Bank
	for i, c := range models.SupportedCurrencies() {
		b, err := bank.NewBank(i+1, c)
		if err != nil {
			return err
		}
		banks = append(banks, b)
	}
	a.directory = bank.NewDirectory(banks...)

	sim := a.cfg.Simulation
	simCfg := simulation.Config{
		AccountsPerBank:    sim.AccountsPerBank,
		MaxBalance:         sim.MaxBalance,
		MaxOverdraft:       sim.MaxOverdraft,
		ReserveBalance:     sim.ReserveBalance,
		MaxAmount:          sim.MaxAmount,
		Interval:           sim.Interval,
		InternationalShare: sim.InternationalShare,
	}
	rnd := simulation.NewRand(sim.Seed)
	if err := simulation.Populate(banks, simCfg, rnd); err != nil {
		return err
	}

	transfers := service.NewTransferService(a.directory, a.rates, a.dispatcher, a.log)
	for _, b := range banks {
		a.processors = append(a.processors, service.NewPaymentProcessor(b, transfers, service.ProcessorConfig{
			Workers: a.cfg.Engine.WorkersPerBank,
			Latency: a.cfg.Engine.ProcessingLatency,
		}, a.log))

		for i := 0; i < sim.GeneratorsPerBank; i++ {
			a.generators = append(a.generators,
				simulation.NewGenerator(b, banks, simCfg, simulation.NewRand(rnd.Int63()), a.log))
		}
	}

	a.log.Info("банки созданы",
		slog.Int("banks", len(banks)),
		slog.Int("accounts_per_bank", sim.AccountsPerBank),
		slog.Int("generators", len(a.generators)))
	return nil
}

// Run starts every bank, feeds them for the simulation duration or until a
// signal arrives, then stops the banks and reports their state.
func (a *App) Run() error {
	if len(a.processors) == 0 {
		return errors.New("banks not initialized, call BuildBankLayer first")
	}

	for _, p := range a.processors {
		if err := p.Start(context.Background()); err != nil {
			return err
		}
	}

	simCtx, cancelSim := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, g := range a.generators {
		wg.Add(1)
		go func(g *simulation.Generator) {
			defer wg.Done()
			g.Run(simCtx)
		}(g)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownChan)

	timer := time.NewTimer(a.cfg.Simulation.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		a.log.Info("симуляция завершена", slog.Duration("duration", a.cfg.Simulation.Duration))
	case sig := <-shutdownChan:
		a.log.Info("получен сигнал завершения", slog.String("signal", sig.String()))
	}

	cancelSim()
	wg.Wait()

	a.log.Info("приложение останавливается")
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown)
	defer cancel()

	for _, p := range a.processors {
		left, err := p.Stop(ctx)
		if err != nil {
			a.log.Error("ошибка при остановке банка",
				slog.Int("bank_id", p.Bank().ID()),
				slog.String("error", err.Error()))
		}
		if left > 0 {
			a.log.Warn("транзакции остались в очереди",
				slog.Int("bank_id", p.Bank().ID()),
				slog.Int("pending", left))
		}
	}

	a.logReports()
	a.close(ctx)

	a.log.Info("приложение остановлено")
	return nil
}

func (a *App) logReports() {
	for _, b := range a.directory.Banks() {
		r := b.Report()

		reserves := make([]any, 0, len(r.Reserves))
		for _, c := range models.SupportedCurrencies() {
			reserves = append(reserves, slog.String(c.String(), money.Format(r.Reserves[c], c)))
		}

		a.log.Info("отчет банка",
			slog.Int("bank_id", r.BankID),
			slog.String("currency", r.Currency.String()),
			slog.Int64("national_transfers", r.NationalTransfers),
			slog.Int64("international_transfers", r.InternationalTransfers),
			slog.Int("accounts", r.AccountCount),
			slog.String("total_balance", money.Format(r.TotalBalance, r.Currency)),
			slog.String("profit", money.Format(r.Profit, r.Currency)),
			slog.Int("pending", r.Pending),
			slog.Group("reserves", reserves...))
	}
}

func (a *App) close(ctx context.Context) {
	if a.dispatcher != nil {
		if err := a.dispatcher.Shutdown(ctx); err != nil {
			a.log.Error("ошибка при остановке отправки событий", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.log.Info("закрытие соединения с базой данных")
		a.pool.Close()
	}

	a.log.Info("закрытие файла логов")
	if err := a.logFile.Close(); err != nil {
		a.log.Error("ошибка при закрытии файла логов", slog.String("error", err.Error()))
	}
}
