package cienv

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jfrog/release-publisher-go/entities"
)

// AppendEnvFile appends one 'KEY=VALUE' line per variable to the file at path, creating it if needed.
func AppendEnvFile(path string, vars []entities.EnvVar) (err error) {
	var content strings.Builder
	for _, envVar := range vars {
		if envVar.Key == "" || strings.ContainsAny(envVar.Key, "=\n") {
			return fmt.Errorf("invalid environment variable name '%s'", envVar.Key)
		}
		if strings.Contains(envVar.Value, "\n") {
			return fmt.Errorf("the value of '%s' spans multiple lines", envVar.Key)
		}
		content.WriteString(envVar.Key + "=" + envVar.Value + "\n")
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	_, err = file.WriteString(content.String())
	return
}
