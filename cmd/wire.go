package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	reportadapter "github.com/starxnet/mining-credits-cli/internal/adapters/render/report"
	leveldbrepo "github.com/starxnet/mining-credits-cli/internal/adapters/repo/leveldb"
	tomlrepo "github.com/starxnet/mining-credits-cli/internal/adapters/repo/toml"
	"github.com/starxnet/mining-credits-cli/internal/application"
	"github.com/starxnet/mining-credits-cli/internal/domain"
	"github.com/starxnet/mining-credits-cli/internal/ports"
)

const (
	configDirName = ".mcc"
	configName    = "config"
	configType    = "toml"

	backendTOML    = "toml"
	backendLevelDB = "leveldb"
)

type app struct {
	store         ports.AccountStore
	runService    *application.RunService
	miningService *application.MiningService
	log           *zap.Logger

	renderReport   func(application.Report) (string, error)
	renderStatuses func([]application.Status, reportadapter.RenderOptions) (string, error)
	now            func() time.Time

	slashEnabled bool
	slashAllow   []string

	closeStore func() error
}

func (a *app) Close() error {
	_ = a.log.Sync()
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)

	cfg.SetDefault("store.backend", backendTOML)
	cfg.SetDefault("store.path", filepath.Join(configDir, "accounts.toml"))
	cfg.SetDefault("store.leveldb_path", filepath.Join(configDir, "accounts.db"))
	cfg.SetDefault("rates.base_per_hour", domain.DefaultRates().BasePerHour)
	cfg.SetDefault("rates.boost_per_referral", domain.DefaultRates().BoostPerReferral)
	cfg.SetDefault("rates.max_session", domain.DefaultRates().MaxSession)
	cfg.SetDefault("rates.slash_per_hour", domain.DefaultRates().SlashPerHour)
	cfg.SetDefault("slash.enabled", false)
	cfg.SetDefault("slash.allow", []string{})
	cfg.SetDefault("log.level", "warn")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	rates := domain.Rates{
		BasePerHour:      cfg.GetFloat64("rates.base_per_hour"),
		BoostPerReferral: cfg.GetFloat64("rates.boost_per_referral"),
		MaxSession:       cfg.GetDuration("rates.max_session"),
		SlashPerHour:     cfg.GetFloat64("rates.slash_per_hour"),
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("validate rates config: %w", err)
	}

	log, err := buildLogger(cfg.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, closeStore, err := wireStore(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		store:          store,
		runService:     application.NewRunService(store, rates, log),
		miningService:  application.NewMiningService(store, rates),
		log:            log,
		renderReport:   reportadapter.Render,
		renderStatuses: reportadapter.RenderStatuses,
		now:            time.Now,
		slashEnabled:   cfg.GetBool("slash.enabled"),
		slashAllow:     cfg.GetStringSlice("slash.allow"),
		closeStore:     closeStore,
	}, nil
}

func wireStore(cfg *viper.Viper) (ports.AccountStore, func() error, error) {
	switch backend := cfg.GetString("store.backend"); backend {
	case backendTOML:
		repo, err := tomlrepo.NewRepository(cfg.GetString("store.path"), ports.SystemClock{})
		if err != nil {
			return nil, nil, fmt.Errorf("wire toml account store: %w", err)
		}
		return repo, nil, nil
	case backendLevelDB:
		repo, err := leveldbrepo.Open(cfg.GetString("store.leveldb_path"), ports.SystemClock{})
		if err != nil {
			return nil, nil, fmt.Errorf("wire leveldb account store: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(parsed)
	logCfg.OutputPaths = []string{"stderr"}

	return logCfg.Build()
}
