package driver

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-version"
)

const (
	DriverName    = "lfmf"
	LibraryName   = "LFMF"
	driverVersion = "1.1.0"
	// libraryVersion is the revision of the propagation model the engine
	// implements.
	libraryVersion = "1.1.0"
)

var (
	DriverVersion  = version.Must(version.NewVersion(driverVersion))
	LibraryVersion = version.Must(version.NewVersion(libraryVersion))
)

// WriteVersion prints the driver and library versions.
func WriteVersion(w io.Writer) {
	fmt.Fprintf(w, "%s Driver v%s\n", LibraryName, DriverVersion)
	fmt.Fprintf(w, "%s Library v%s\n", LibraryName, LibraryVersion)
}
