package snippet

import "github.com/sanity-io/litter"

var dumpOptions = litter.Options{
	HidePrivateFields: true,
	StripPackageNames: true,
}

// Dump renders list for reading on a terminal.
func Dump(list []Snippet) string {
	return dumpOptions.Sdump(CloneAll(list))
}
