package gormdb

import (
	"fmt"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
)

type logger struct {
	log logutil.Log
}

func (lg logger) Print(values ...interface{}) {
	lg.log.Debugf("db", "%s", fmt.Sprintln(values...))
}
