package bootstrap

import (
	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/sirupsen/logrus"
)

func BuildLogger(cfg config.Config) (*logrus.Logger, error) {
	return buildLogger(cfg)
}
