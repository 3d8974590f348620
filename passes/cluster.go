// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package passes

import "github.com/gviegas/scene/framegraph"

// Clustered-lighting grid dimensions and limits, matching the
// original's ClusterSizeX/Y/Z and per-cluster light-index capacity.
const (
	clusterSizeX = 24
	clusterSizeY = 16
	clusterSizeZ = 9
	clusterCount = clusterSizeX * clusterSizeY * clusterSizeZ

	maxClusterLights = 128
	// clusterStrideBytes: MinBound(vec3+pad)=16, MaxBound=12, NumLights=4,
	// LightIndex[maxClusterLights]=4 bytes each.
	clusterStrideBytes = 16 + 12 + 4 + maxClusterLights*4

	maxSceneLights   = 1024
	lightStrideBytes = 32 // Position(vec3)+Radius, Color(vec3)+Intensity
)

// ClusteredLightingPass builds the cluster AABB grid and culls scene
// point lights into it (spec's supplemented clustered-lighting
// feature, grounded on ClusteredPass in the original pipeline).
type ClusteredLightingPass struct{}

func NewClusteredLightingPass() *ClusteredLightingPass { return &ClusteredLightingPass{} }

func (p *ClusteredLightingPass) Name() string              { return "ClusterLighting" }
func (p *ClusteredLightingPass) Kind() framegraph.PassKind { return framegraph.ComputePass }

func (p *ClusteredLightingPass) Setup(b *framegraph.Builder) {
	b.WriteTransientBuffer(FrustumCluster, framegraph.BufferDesc{
		Count: clusterCount, StrideBytes: clusterStrideBytes, UnorderedAccess: true,
	})
	b.WriteTransientBuffer(PointLights, framegraph.BufferDesc{
		Count: maxSceneLights, StrideBytes: lightStrideBytes, UnorderedAccess: true,
	})
}

// Execute would dispatch the AABB-build compute shader once (the
// grid geometry never changes for a fixed camera projection) and the
// light-culling compute shader every frame, after committing the
// scene's culled point lights into the PointLights buffer.
func (p *ClusteredLightingPass) Execute(ctx *framegraph.Context) error {
	return nil
}
