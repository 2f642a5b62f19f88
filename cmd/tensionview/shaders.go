package main

// SSBO binding points shared by the shader and the property store.
const (
	bindingAdjacency  = 0
	bindingRestDeltas = 1
	bindingVertices   = 2
)

const tensionVertexShader = `#version 430 core

layout(std430, binding = 0) readonly buffer AdjacencyBuffer { uint _Adjacency[]; };
layout(std430, binding = 1) readonly buffer RestDeltaBuffer { float _RestDeltas[]; };
layout(std430, binding = 2) readonly buffer VertexBuffer { float _Vertices[]; };

uniform int _VertexCount;
uniform int _VertexStride;
uniform vec4 _TransformScale;

uniform float _StretchIntensity;
uniform float _StretchLimit;
uniform float _StretchPower;
uniform float _SquashIntensity;
uniform float _SquashLimit;
uniform float _SquashPower;

uniform mat4 uViewProj;

out vec3 vColor;

vec3 livePosition(uint i) {
	uint b = i * uint(_VertexStride);
	return vec3(_Vertices[b], _Vertices[b + 1u], _Vertices[b + 2u]);
}

vec3 restDelta(uint k) {
	uint b = k * 3u;
	return vec3(_RestDeltas[b], _RestDeltas[b + 1u], _RestDeltas[b + 2u]);
}

void main() {
	uint v = uint(gl_VertexID);
	vec3 p = livePosition(v);
	vec3 scale = _TransformScale.xyz;

	uint start = v == 0u ? 0u : _Adjacency[v - 1u];
	uint end = _Adjacency[v];

	float stretch = 0.0;
	float squash = 0.0;
	for (uint k = start; k < end; k++) {
		uint n = _Adjacency[uint(_VertexCount) + k];
		float live = length((p - livePosition(n)) * scale);
		float rest = length(restDelta(k) * scale);
		float ratio = live / max(rest, 1e-6) - 1.0;
		stretch += max(ratio, 0.0);
		squash += max(-ratio, 0.0);
	}
	float count = max(float(end - start), 1.0);
	stretch = min(pow(stretch / count * _StretchIntensity, _StretchPower), _StretchLimit);
	squash = min(pow(squash / count * _SquashIntensity, _SquashPower), _SquashLimit);

	vec3 color = vec3(0.78);
	color = mix(color, vec3(0.95, 0.25, 0.2), stretch);
	color = mix(color, vec3(0.2, 0.45, 0.95), squash);
	vColor = color;

	gl_Position = uViewProj * vec4(p, 1.0);
}
`

const tensionFragmentShader = `#version 430 core

in vec3 vColor;
out vec4 fragColor;

void main() {
	fragColor = vec4(vColor, 1.0);
}
`
