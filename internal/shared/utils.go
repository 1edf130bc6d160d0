// Package shared
package shared

import (
	"fmt"
	"os"
)

func SafeEnv(env string) (string, error) {
	// Lookup env variable, and error if not present
	res, present := os.LookupEnv(env)
	if !present {
		return "", fmt.Errorf("missing environment variable %s", env)
	}
	return res, nil
}

func GetEnv(env, fallback string) string {
	if value, ok := os.LookupEnv(env); ok {
		return value
	}
	return fallback
}
