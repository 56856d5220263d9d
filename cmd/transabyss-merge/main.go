// cmd/transabyss-merge/main.go
package main

import (
	"github.com/LRFreeborn/transabyss/internal/app"
	"github.com/LRFreeborn/transabyss/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
