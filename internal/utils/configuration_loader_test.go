package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrif/quartustcl/internal/utils"
)

const (
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testEnvironmentPrefixConstant     = "QUARTUSTCL_TEST"
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: debug\ntool:\n  executable: tclsh\n"
	testMalformedContentConstant      = "common: [unterminated\n"
	testEnvironmentVariableConstant   = "QUARTUSTCL_TEST_COMMON_LOG_FORMAT"
	testEnvironmentValueConstant      = "console"
	testDefaultLogLevelConstant       = "info"
	testDefaultLogFormatConstant      = "structured"
)

type testCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type testToolConfiguration struct {
	Executable string `mapstructure:"executable"`
}

type testApplicationConfiguration struct {
	Common testCommonConfiguration `mapstructure:"common"`
	Tool   testToolConfiguration   `mapstructure:"tool"`
}

func testDefaultValues() map[string]any {
	return map[string]any{
		"common.log_level":  testDefaultLogLevelConstant,
		"common.log_format": testDefaultLogFormatConstant,
	}
}

func TestLoadConfigurationFromExplicitFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testConfigurationContentConstant), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var loadedConfiguration testApplicationConfiguration
	loadMetadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, testDefaultValues(), &loadedConfiguration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, configurationFilePath, loadMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, testDefaultLogFormatConstant, loadedConfiguration.Common.LogFormat)
	require.Equal(testInstance, "tclsh", loadedConfiguration.Tool.Executable)
}

func TestLoadConfigurationAppliesDefaultsWithoutFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})

	var loadedConfiguration testApplicationConfiguration
	loadMetadata, loadError := configurationLoader.LoadConfiguration("", testDefaultValues(), &loadedConfiguration)
	require.NoError(testInstance, loadError)

	require.Empty(testInstance, loadMetadata.ConfigFileUsed)
	require.Equal(testInstance, testDefaultLogLevelConstant, loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, testDefaultLogFormatConstant, loadedConfiguration.Common.LogFormat)
}

func TestLoadConfigurationEnvironmentOverridesDefaults(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentVariableConstant, testEnvironmentValueConstant)

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})

	var loadedConfiguration testApplicationConfiguration
	_, loadError := configurationLoader.LoadConfiguration("", testDefaultValues(), &loadedConfiguration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, testEnvironmentValueConstant, loadedConfiguration.Common.LogFormat)
}

func TestLoadConfigurationReportsMalformedFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testMalformedContentConstant), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var loadedConfiguration testApplicationConfiguration
	_, loadError := configurationLoader.LoadConfiguration(configurationFilePath, testDefaultValues(), &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}
