package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	Lang     string
	Provider string
	Verbose  bool

	// Command flags
	From   string
	To     string
	Out    string
	Native bool
	JSON   bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Lang: "en",
	}
}
