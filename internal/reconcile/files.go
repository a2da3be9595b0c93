package reconcile

// FileAction is the outcome for one file field of one row.
type FileAction int

const (
	FileKeep FileAction = iota
	FileReplace
	FileClear
)

func (a FileAction) String() string {
	switch a {
	case FileReplace:
		return "replace"
	case FileClear:
		return "clear"
	}
	return "keep"
}

// FileDecision says what to do with a file field and which stored file, if
// any, must be released once the write commits.
type FileDecision struct {
	Action  FileAction
	Release string
}

// ResolveFile decides between keeping the current file, replacing it with
// upload, or clearing it. An upload always wins over the removal flag.
func ResolveFile(current string, upload *Upload, remove bool) FileDecision {
	switch {
	case upload != nil:
		return FileDecision{Action: FileReplace, Release: current}
	case remove:
		return FileDecision{Action: FileClear, Release: current}
	default:
		return FileDecision{Action: FileKeep}
	}
}
