package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		KV: KVConfig{Endpoint: "localhost:9000"},
		FileSystem: FileSystemConfig{
			RootMode:     0755,
			MaxOpenFiles: 1000,
			BlockSize:    16384,
			MaxBlocks:    65536,
		},
		Logging: LoggingConfig{Severity: "INFO", Format: "text"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := validConfig()
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsMissingEndpoint(t *testing.T) {
	c := validConfig()
	c.KV.Endpoint = ""
	assert.Error(t, c.Validate())
}

func TestValidateRejectsZeroMaxOpenFiles(t *testing.T) {
	c := validConfig()
	c.FileSystem.MaxOpenFiles = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsOutOfRangeMode(t *testing.T) {
	c := validConfig()
	c.FileSystem.RootMode = 01000
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownSeverity(t *testing.T) {
	c := validConfig()
	c.Logging.Severity = "VERBOSE"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	c := validConfig()
	c.FileSystem.BlockSize = 10000
	assert.Error(t, c.Validate())
}

func TestValidateRejectsZeroMaxBlocks(t *testing.T) {
	c := validConfig()
	c.FileSystem.MaxBlocks = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	c := validConfig()
	c.Logging.Format = "xml"
	assert.Error(t, c.Validate())
}

func TestOctalRoundTrip(t *testing.T) {
	var o Octal
	assert.NoError(t, o.UnmarshalText([]byte("755")))
	assert.EqualValues(t, 0755, o)

	text, err := o.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "755", string(text))
}
