//go:build windows

package config

// unix variable names used in shared config files and their windows names
var windowsEnvKeys = map[string]string{
	"HOSTNAME": "COMPUTERNAME",
	"HOME":     "USERPROFILE",
	"USER":     "USERNAME",
	"TMPDIR":   "TEMP",
}

func mapEnvKey(key string) string {
	if k, ok := windowsEnvKeys[key]; ok {
		return k
	}
	return key
}
