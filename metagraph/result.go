package metagraph

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Result is the outcome of reading a graph file.
type Result int

const (
	OK Result = iota
	WarnBuggyVersion
	WarnConverted
	NotAGraph
	DamagedFile
	DiskError
	NewerVersion
	DeprecatedVersion
)

// Error types of failed reads, one per failing Result.
const (
	ErrTypeNotAGraph         = "not_a_graph"
	ErrTypeDamagedFile       = "damaged_file"
	ErrTypeDiskError         = "disk_error"
	ErrTypeNewerVersion      = "newer_version"
	ErrTypeDeprecatedVersion = "deprecated_version"
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case WarnBuggyVersion:
		return "warn_buggy_version"
	case WarnConverted:
		return "warn_converted"
	case NotAGraph:
		return ErrTypeNotAGraph
	case DamagedFile:
		return ErrTypeDamagedFile
	case DiskError:
		return ErrTypeDiskError
	case NewerVersion:
		return ErrTypeNewerVersion
	case DeprecatedVersion:
		return ErrTypeDeprecatedVersion
	default:
		return "unknown"
	}
}

// Failed reports whether the graph was left empty.
func (r Result) Failed() bool {
	return r >= NotAGraph
}

// ResultOf maps a read error to its Result. A nil error is OK.
func ResultOf(err error) Result {
	if err == nil {
		return OK
	}
	switch errors.Type(err) {
	case ErrTypeNotAGraph:
		return NotAGraph
	case ErrTypeDiskError:
		return DiskError
	case ErrTypeNewerVersion:
		return NewerVersion
	case ErrTypeDeprecatedVersion:
		return DeprecatedVersion
	default:
		return DamagedFile
	}
}

func deprecated(section string, version int) error {
	return errors.New("graph section too old to be read").
		WithType(ErrTypeDeprecatedVersion).
		WithTag("section", section).
		WithTag("version", version)
}
