// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice adapts an external speech transcriber into composer
// input. Support is detected once at startup; without a transcriber on
// PATH the adapter stays permanently unsupported and every operation is
// a no-op. While listening, interim transcripts mirror into the
// composer; a short grace delay after stopping lets the final
// transcript land before the message auto-submits.
package voice
