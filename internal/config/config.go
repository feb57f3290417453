// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JLinkExe     string        // debug-probe driver executable
	TargetsFile  string        // extra target definitions (YAML), may be empty
	BuildDir     string        // root of the board build tree
	FlashTimeout time.Duration // 0 means block until the probe exits
}

// Load loads configuration from environment variables.
// Automatically loads a .env file if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		JLinkExe:     getEnv("TOCKTOOL_JLINK", "JLinkExe"),
		TargetsFile:  getEnv("TOCKTOOL_TARGETS", ""),
		BuildDir:     getEnv("TOCKTOOL_BUILD_DIR", "."),
		FlashTimeout: getDuration("TOCKTOOL_FLASH_TIMEOUT", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
