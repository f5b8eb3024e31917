// Package main provides the entry point for the femtolog maintainer tool
package main

import (
	"os"

	"github.com/sancloud/femtolog-maintainer/cmd/maintainer/cmd"
	"github.com/sancloud/femtolog-maintainer/pkg/maint"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(maint.ExitCode(err))
	}
}
