// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	errCloseGroupSizeNotPositive   = errors.New("config: close group size must be positive")
	errPeerTimeoutNotPositive      = errors.New("config: peer timeout must be positive")
	errEventBusCapacityNotPositive = errors.New("config: event bus capacity must be positive")
)
