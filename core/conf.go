package core

type Conf struct {
	Version            string `long:"version" description:"version of smartlayout" env:"SMARTLAYOUT_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"SMARTLAYOUT_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"SMARTLAYOUT_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"SMARTLAYOUT_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"SMARTLAYOUT_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"SMARTLAYOUT_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"SMARTLAYOUT_LOG_ROTATION_MAX_DAYS"`
	DeviceSettingPath  string `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"SMARTLAYOUT_DEVICE_SETTING_PATH"`
	PatchSize          int    `long:"patch-size" short:"k" description:"number of physical qubits to select" default:"0" env:"SMARTLAYOUT_PATCH_SIZE"`
	VirtualQubits      int    `long:"virtual-qubits" description:"virtual qubit count of the layout; defaults to patch size" default:"0" env:"SMARTLAYOUT_VIRTUAL_QUBITS"`
	Seed               int64  `long:"seed" description:"base random seed for the restart schedule" default:"1" env:"SMARTLAYOUT_SEED"`
	WatchPeriod        int    `long:"watch-period" description:"re-selection period in seconds for the watch command" default:"60" env:"SMARTLAYOUT_WATCH_PERIOD"`
	MetricsDir         string `long:"metrics-dir" description:"daily metrics log dir" default:"./shares/metrics" env:"SMARTLAYOUT_METRICS_DIR"`
	QueueMaxSize       int    `long:"queue-max-size" description:"batch runner queue max size" default:"100" env:"SMARTLAYOUT_QUEUE_MAX_SIZE"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"SMARTLAYOUT_SETTING_PATH"`
}
