package store_test

import (
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	return logging.Discard()
}
