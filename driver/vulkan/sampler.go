package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// samplerKey identifies a cached native sampler by the abstract state that built it.
type samplerKey struct {
	state  common.SamplerState
	maxLod float32
}

// fetchSampler returns the cached native sampler for state, creating it on first
// use. Unset numeric fields fall back to driver defaults.
func (r *renderer) fetchSampler(state common.SamplerState, levelCount int32) (Sampler, error) {
	maxLod := float32(common.Coalesce(state.MaxMipLevel, levelCount))
	key := samplerKey{state: state, maxLod: maxLod}
	if sampler, ok := r.samplerCache[key]; ok {
		return sampler, nil
	}

	anisotropy := float32(common.Coalesce(state.MaxAnisotropy, 4))
	if !r.deviceFeatures.SamplerAnisotropy || state.Filter != common.TextureFilterAnisotropic {
		anisotropy = 1
	} else if r.deviceFeatures.MaxSamplerAnisotropy > 0 && anisotropy > r.deviceFeatures.MaxSamplerAnisotropy {
		anisotropy = r.deviceFeatures.MaxSamplerAnisotropy
	}

	sampler, err := r.backend.CreateSampler(r.device, SamplerInfo{
		State:         state,
		MaxAnisotropy: anisotropy,
		MaxLod:        maxLod,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create sampler")
	}
	r.samplerCache[key] = sampler
	return sampler, nil
}

// verifySlot binds texture and sampler state to one shader slot. A nil texture
// clears the slot.
func (r *renderer) verifySlot(slots []textureSamplerSlot, index int32, texture driver.TextureHandle, state common.SamplerState) error {
	if index < 0 || int(index) >= len(slots) {
		return errors.Newf("sampler slot %d out of range", index)
	}
	if driver.Handle(texture).IsNil() {
		slots[index] = textureSamplerSlot{}
		return nil
	}
	entry, ok := r.textures.get(driver.Handle(texture))
	if !ok {
		return errors.New("bind of unknown texture")
	}
	sampler, err := r.fetchSampler(state, (*entry).levelCount)
	if err != nil {
		return err
	}
	slots[index] = textureSamplerSlot{texture: texture, sampler: sampler}
	return nil
}

// VerifySampler binds a texture and sampler state to a fragment shader slot.
//
// Parameters:
//   - index: the fragment sampler slot
//   - texture: the texture to bind, the nil handle to clear the slot
//   - sampler: the abstract sampler state
//
// Returns:
//   - error: nil on success
func (r *renderer) VerifySampler(index int32, texture driver.TextureHandle, sampler common.SamplerState) error {
	return r.verifySlot(r.samplers[:], index, texture, sampler)
}

// VerifyVertexSampler binds a texture and sampler state to a vertex shader slot.
func (r *renderer) VerifyVertexSampler(index int32, texture driver.TextureHandle, sampler common.SamplerState) error {
	return r.verifySlot(r.vertexSamplers[:], index, texture, sampler)
}
