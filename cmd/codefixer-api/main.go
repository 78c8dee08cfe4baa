package main

import (
	"github.com/Shubhamkahar196/CodeFixer/pkg/app"
)

func main() {
	a := app.NewApp()
	a.RunForever()
}
