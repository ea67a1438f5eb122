package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/driver"
)

// effectData is one live shader effect: the two stage modules built from the
// opaque compiled blob, the fixed binding layout they render with, and the
// per-stage uniform buffers, host-visible and persistently mapped.
type effectData struct {
	code driver.EffectCode

	vertexModule   ShaderModule
	fragmentModule ShaderModule
	setLayout      DescriptorSetLayout
	pipelineLayout PipelineLayout

	vertexUniform         Buffer
	vertexUniformMemory   DeviceMemory
	vertexUniformMapped   []byte
	fragmentUniform       Buffer
	fragmentUniformMemory DeviceMemory
	fragmentUniformMapped []byte
}

func (r *renderer) createUniformBuffer(size int32) (Buffer, DeviceMemory, []byte, error) {
	buffer, err := r.backend.CreateBuffer(r.device, BufferInfo{
		Size:  uint64(size),
		Usage: BufferUsageUniform,
	})
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "create uniform buffer")
	}
	memory, allocatedSize, err := r.allocateBufferMemory(buffer, MemoryHostVisible|MemoryHostCoherent)
	if err != nil {
		r.backend.DestroyBuffer(r.device, buffer)
		return 0, 0, nil, err
	}
	mapped, err := r.backend.MapMemory(r.device, memory, allocatedSize)
	if err != nil {
		r.backend.FreeMemory(r.device, memory)
		r.backend.DestroyBuffer(r.device, buffer)
		return 0, 0, nil, errors.Wrap(err, "map uniform buffer")
	}
	return buffer, memory, mapped, nil
}

// CreateEffect ingests an opaque compiled-shader blob and builds the modules,
// binding layout and uniform storage the effect draws with.
//
// Parameters:
//   - code: the compiled stage bytecode and its uniform footprint
//
// Returns:
//   - driver.EffectHandle: the created effect's handle
//   - error: nil on success, with all partial sub-resources released on failure
func (r *renderer) CreateEffect(code driver.EffectCode) (driver.EffectHandle, error) {
	if len(code.VertexShader) == 0 || len(code.FragmentShader) == 0 {
		return driver.EffectHandle{}, errors.New("effect code is missing a shader stage")
	}

	e := &effectData{code: code}
	fail := func(err error) (driver.EffectHandle, error) {
		r.destroyEffectData(e)
		return driver.EffectHandle{}, err
	}

	var err error
	if e.vertexModule, err = r.backend.CreateShaderModule(r.device, code.VertexShader); err != nil {
		return fail(errors.Wrap(err, "create vertex shader module"))
	}
	if e.fragmentModule, err = r.backend.CreateShaderModule(r.device, code.FragmentShader); err != nil {
		return fail(errors.Wrap(err, "create fragment shader module"))
	}
	if e.setLayout, err = r.backend.CreateDescriptorSetLayout(r.device, DescriptorSetLayoutInfo{
		VertexUniform:        code.VertexUniformSize > 0,
		FragmentUniform:      code.FragmentUniformSize > 0,
		VertexSamplerCount:   maxVertexTextureSamplers,
		FragmentSamplerCount: maxTextureSamplers,
	}); err != nil {
		return fail(errors.Wrap(err, "create descriptor set layout"))
	}
	if e.pipelineLayout, err = r.backend.CreatePipelineLayout(r.device, []DescriptorSetLayout{e.setLayout}); err != nil {
		return fail(errors.Wrap(err, "create pipeline layout"))
	}
	if code.VertexUniformSize > 0 {
		if e.vertexUniform, e.vertexUniformMemory, e.vertexUniformMapped, err = r.createUniformBuffer(code.VertexUniformSize); err != nil {
			return fail(err)
		}
	}
	if code.FragmentUniformSize > 0 {
		if e.fragmentUniform, e.fragmentUniformMemory, e.fragmentUniformMapped, err = r.createUniformBuffer(code.FragmentUniformSize); err != nil {
			return fail(err)
		}
	}

	return driver.EffectHandle(r.effects.add(e)), nil
}

// destroyEffectData releases every sub-resource of e, tolerating partially built
// effects from a failed creation.
func (r *renderer) destroyEffectData(e *effectData) {
	if e.fragmentUniform != 0 {
		r.backend.DestroyBuffer(r.device, e.fragmentUniform)
	}
	if e.fragmentUniformMemory != 0 {
		r.backend.FreeMemory(r.device, e.fragmentUniformMemory)
	}
	if e.vertexUniform != 0 {
		r.backend.DestroyBuffer(r.device, e.vertexUniform)
	}
	if e.vertexUniformMemory != 0 {
		r.backend.FreeMemory(r.device, e.vertexUniformMemory)
	}
	if e.pipelineLayout != 0 {
		r.backend.DestroyPipelineLayout(r.device, e.pipelineLayout)
	}
	if e.setLayout != 0 {
		r.backend.DestroyDescriptorSetLayout(r.device, e.setLayout)
	}
	if e.fragmentModule != 0 {
		r.backend.DestroyShaderModule(r.device, e.fragmentModule)
	}
	if e.vertexModule != 0 {
		r.backend.DestroyShaderModule(r.device, e.vertexModule)
	}
}

// CloneEffect creates an independent effect from the same compiled blob, copying
// the current uniform contents.
func (r *renderer) CloneEffect(effect driver.EffectHandle) (driver.EffectHandle, error) {
	entry, ok := r.effects.get(driver.Handle(effect))
	if !ok {
		return driver.EffectHandle{}, errors.New("clone of unknown effect")
	}
	source := *entry
	cloned, err := r.CreateEffect(source.code)
	if err != nil {
		return driver.EffectHandle{}, err
	}
	cloneEntry, _ := r.effects.get(driver.Handle(cloned))
	clone := *cloneEntry
	copy(clone.vertexUniformMapped, source.vertexUniformMapped)
	copy(clone.fragmentUniformMapped, source.fragmentUniformMapped)
	return cloned, nil
}

// AddDisposeEffect unregisters the effect, waits for the device to go idle and
// destroys its sub-resources together with every pipeline compiled against it.
func (r *renderer) AddDisposeEffect(effect driver.EffectHandle) error {
	e, ok := r.effects.remove(driver.Handle(effect))
	if !ok {
		return errors.New("dispose of unknown effect")
	}
	if err := r.disposeIdle(); err != nil {
		return err
	}
	for key, pipeline := range r.pipelines {
		if key.effect == effect {
			r.backend.DestroyPipeline(r.device, pipeline)
			delete(r.pipelines, key)
		}
	}
	if r.currentEffect == effect {
		r.currentEffect = driver.EffectHandle{}
		r.pipelineDirty = true
	}
	r.destroyEffectData(e)
	return nil
}

// ApplyEffect selects the effect for subsequent draws. The pass index is accepted
// for interface fidelity; this driver renders single-pass effects.
func (r *renderer) ApplyEffect(effect driver.EffectHandle, pass uint32) error {
	if _, ok := r.effects.get(driver.Handle(effect)); !ok {
		return errors.New("apply of unknown effect")
	}
	if r.currentEffect != effect {
		r.currentEffect = effect
		r.pipelineDirty = true
	}
	return nil
}
