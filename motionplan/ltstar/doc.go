// Package ltstar implements Lazy Theta*, an any-angle variant of A*, over a sparse variable
// resolution occupancy map. Nodes are voxel centres; an edge between two voxels is usable when the
// corridor of the requested safety margin around the straight segment joining them is free.
//
// Line of sight checks are deferred until a node is expanded: a node inherits its grandparent as
// parent optimistically and is only rewired onto the best closed neighbour when that corridor turns
// out to be blocked.
package ltstar
