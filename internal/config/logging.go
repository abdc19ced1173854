package config

import "visawatch/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig = logging.Config
