package version

const (
	// AlexSemVer is used as the fallback version of alexandria
	// when not using git describe. It uses semantic versioning format.
	AlexSemVer = "1.0.0-dev"

	// RPCVersion versions the JSON-RPC method set and its encodings.
	RPCVersion = "1"
)

// AlexGitCommitHash uses git rev-parse HEAD to find commit hash which is helpful
// for the engineering team when working with the alexandria binary. See Makefile.
var AlexGitCommitHash = ""

// String returns the semantic version, followed by the commit hash when the
// binary was built with one.
func String() string {
	if AlexGitCommitHash == "" {
		return AlexSemVer
	}
	return AlexSemVer + "+" + AlexGitCommitHash
}
