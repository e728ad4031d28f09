package core

type NonSecretConf struct {
	DevMode            bool
	DisableStdoutLog   bool
	EnableFileLog      bool
	LogDir             string
	LogLevel           string
	LogRotationMaxDays int
	DeviceSettingPath  string
	PatchSize          int
	VirtualQubits      int
	Seed               int64
	WatchPeriod        int
	MetricsDir         string
	QueueMaxSize       int
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:            c.DevMode,
		DisableStdoutLog:   c.DisableStdoutLog,
		EnableFileLog:      c.EnableFileLog,
		LogDir:             c.LogDir,
		LogLevel:           c.LogLevel,
		LogRotationMaxDays: c.LogRotationMaxDays,
		DeviceSettingPath:  c.DeviceSettingPath,
		PatchSize:          c.PatchSize,
		VirtualQubits:      c.VirtualQubits,
		Seed:               c.Seed,
		WatchPeriod:        c.WatchPeriod,
		MetricsDir:         c.MetricsDir,
		QueueMaxSize:       c.QueueMaxSize,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
