package common

import "fmt"

// FileHeader returns the banner placed at the top of every generated artifact.
// It carries no timestamp so identical inputs produce identical files.
func FileHeader(comment, language string) string {
	version, err := GetVersion()
	if err != nil {
		version = "unknown"
	}
	return fmt.Sprintf("%s <auto-generated>\n%s Generated by interopgen %s (%s). Do not edit.\n%s </auto-generated>\n",
		comment, comment, version, language, comment)
}
