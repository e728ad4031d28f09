package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version of the running smartlayout binary. The build flag wins over the
// configured version; both absent means an untagged development build.
var Version string

const NoVersion = "untagged_build"

func SetVersion(c *Conf, versionByBuildFlag string) {
	switch {
	case versionByBuildFlag != "":
		Version = versionByBuildFlag
	case c.Version != "":
		Version = c.Version
	default:
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("Smartlayout version is %s", Version))
}
