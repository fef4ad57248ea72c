package modkit_test

import plog "pvcreek/internal/platform/logger"

func logger() plog.Logger { return *plog.Named("test") }
