package charmatrix

import (
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("pkg", "charmatrix")

// SetLogger replaces the entry the package logs through. Passing nil restores
// the standard logrus logger.
func SetLogger(entry *log.Entry) {
	if entry == nil {
		entry = log.WithField("pkg", "charmatrix")
	}
	logger = entry
}
