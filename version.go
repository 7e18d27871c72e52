/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package mempoolstream

// Global version for mempool-stream; overwritten during build process via
// -ldflags="-X 'importpath.Version=value'".
// See https://github.com/golang/go/wiki/GcToolchainTricks#including-build-information-in-the-executable
var Version = "1.0.0"
