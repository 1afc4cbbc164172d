// pixlink links survey observations to climate raster grids and manages
// the PostgreSQL database that holds the linked values.
package main

import (
	"github.com/ecoclim/pixlink/cmd"
)

func main() {
	cmd.Execute()
}
