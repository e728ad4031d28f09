package log

import (
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

func LogVersion() {
	zap.L().Debug("Smartlayout version:" + core.Version)
}
