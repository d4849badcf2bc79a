// SPDX-License-Identifier: EPL-2.0

package audioenc

import (
	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/aiff"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/flac"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/oggflac"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/opus"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/wav"
)

// NewRegistry returns a registry with every built-in backend
// registered. All backends share priority zero; registration order
// breaks ties, so the bare "ogg" extension and "audio/ogg" MIME type
// resolve to the Ogg FLAC backend. Callers wanting Opus for .ogg
// should resolve by name or use the .opus extension.
func NewRegistry() *encoding.Registry {
	reg := encoding.NewRegistry()
	reg.Register(wav.Backend{}, 0)
	reg.Register(aiff.Backend{}, 0)
	reg.Register(flac.Backend{}, 0)
	reg.Register(oggflac.Backend{}, 0)
	reg.Register(opus.Backend{}, 0)
	return reg
}
