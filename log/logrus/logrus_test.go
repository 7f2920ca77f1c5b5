package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/unkn0wn-root/recordcache"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base).WithField("component", "recordcache")}

	l.Info("record created", recordcache.Fields{"type": "Product", "key": "Product::uid::1"})

	e := hook.LastEntry()
	if e == nil || e.Level != logrus.InfoLevel || e.Message != "record created" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Data["type"] != "Product" || e.Data["component"] != "recordcache" {
		t.Fatalf("unexpected data %v", e.Data)
	}
}
