package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/qpatch-dev/smartlayout/calib"
	"github.com/qpatch-dev/smartlayout/core"
	"github.com/qpatch-dev/smartlayout/device"
	"github.com/qpatch-dev/smartlayout/layout"
	"github.com/qpatch-dev/smartlayout/log"
	"github.com/qpatch-dev/smartlayout/noisegraph"
	"github.com/qpatch-dev/smartlayout/selector"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var app *App

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	app = &App{}
	setParser(app)
}

type App struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	Device   string `long:"device" description:"device-loader-type" default:"file" choice:"file" choice:"dummy" env:"SMARTLAYOUT_DEVICE_TYPE"`
	Selector string `long:"selector" description:"selector-type" default:"greedy" choice:"greedy" choice:"exhaustive" env:"SMARTLAYOUT_SELECTOR_TYPE"`
}

func setParser(app *App) {
	parser = flags.NewParser(app, flags.Default)
	parser.ShortDescription = "smartlayout"
	parser.LongDescription = "noise-aware qubit patch selection for quantum devices."
	parser.AddCommand("select", "select a patch", "select a low-noise qubit patch once and print the layout", newSelectCmd())
	parser.AddCommand("watch", "watch calibration", "re-select periodically as calibration data refreshes", newWatchCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (a *App) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() (core.DeviceLoader, error) {
		switch a.DIContainerParameters.Device {
		case "file":
			return &device.FileDevice{}, nil
		case "dummy":
			return &device.DummyDevice{}, nil
		default:
			return &device.DummyDevice{}, fmt.Errorf("%s is an unknown device loader", a.DIContainerParameters.Device)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.PatchSelector, error) {
		switch a.DIContainerParameters.Selector {
		case "greedy":
			return selector.NewGreedy(), nil
		case "exhaustive":
			return selector.NewExhaustive(), nil
		default:
			return selector.NewGreedy(), fmt.Errorf("%s is an unknown selector", a.DIContainerParameters.Selector)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.Normalizer { return calib.NewDefaultNormalizer() })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.GraphBuilder { return noisegraph.NewDefaultBuilder() })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.LayoutAdapter { return layout.NewAdapter() })
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "smartlayout-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type selectCmd struct{}

func newSelectCmd() *selectCmd {
	return &selectCmd{}
}

func (c *selectCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	if err := loadSettings(app.Conf); err != nil {
		return err
	}
	s := setupSystemComponents(app.Conf)

	if app.Conf.PatchSize < 1 {
		zap.L().Error("patch size (-k) must be at least 1")
		return fmt.Errorf("patch size (-k) must be at least 1, got %d", app.Conf.PatchSize)
	}
	mapping, meta, err := s.RunSelection(app.Conf, app.Conf.PatchSize, app.Conf.VirtualQubits)
	if err != nil {
		zap.L().Error(fmt.Sprintf("selection failed/reason:%s", err))
		return err
	}
	fmt.Println(mapping.String())
	fmt.Println(meta.String())
	return nil
}

type watchCmd struct{}

func newWatchCmd() *watchCmd {
	return &watchCmd{}
}

func (c *watchCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	if err := loadSettings(app.Conf); err != nil {
		return err
	}
	s := setupSystemComponents(app.Conf)

	if app.Conf.PatchSize < 1 {
		zap.L().Error("patch size (-k) must be at least 1")
		return fmt.Errorf("patch size (-k) must be at least 1, got %d", app.Conf.PatchSize)
	}

	var metrics *log.MetricsLogger
	metrics, err := log.NewMetricsLogger(app.Conf.MetricsDir)
	if err != nil {
		zap.L().Warn(fmt.Sprintf("metrics logging disabled/reason:%s", err))
		metrics = nil
	} else {
		defer metrics.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt))
	g.Add(func() error {
		period := time.Duration(app.Conf.WatchPeriod) * time.Second
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		log.LogVersion()
		for {
			c.reselect(s, metrics)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}, func(error) {
		cancel()
	})

	if err := g.Run(); err != nil {
		if _, ok := err.(run.SignalError); ok {
			zap.L().Info(fmt.Sprintf("shutting down/reason:%s", err))
			return nil
		}
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}
	return nil
}

func (c *watchCmd) reselect(s *core.SystemComponents, metrics *log.MetricsLogger) {
	mapping, meta, err := s.RunSelection(app.Conf, app.Conf.PatchSize, app.Conf.VirtualQubits)
	if err != nil {
		zap.L().Error(fmt.Sprintf("selection failed/reason:%s", err))
		return
	}
	zap.L().Info(fmt.Sprintf("current layout:%s (cost=%g)", mapping.String(), meta.TotalCost))
	if metrics != nil {
		metrics.LogSelection(meta, 0)
	}
}

func loadSettings(conf *core.Conf) error {
	core.ResetSetting()
	registerSetting()
	if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
		zap.L().Info(fmt.Sprintf("no setting file at %s, using defaults/reason:%s", conf.SettingPath, err))
	}
	return nil
}

// TODO : move to log package
func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", app.DIContainerParameters))

	container, err := app.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	core.SetInfo(conf)
	return s
}

// "device" stays unregistered: FileDevice falls back to the conf path when
// the setting table is absent, and a typed default would shadow that.
func registerSetting() {
	core.RegisterSetting("hyperparams", map[string]interface{}{})
}
