// Package cli provides the wikidoc command-line interface: splitting
// wikitext into sections, translating text, and searching, fetching and
// exporting encyclopedia articles. Configuration comes from flags, a
// .wikidoc.yaml file and WIKIDOC_* environment variables via viper.
package cli
