/*
Package topology lays a project's warehouses and stages out as a directed graph.

Build is a pure function: the same stages, warehouses, visibility flag and
persisted color assignment always produce the same nodes, connectors,
bounding box, topologically sorted stage list and color map.

Layout rules:

  - Every stage is attributed to a lane. A stage with upstream stages takes
    the lane of its first resolvable upstream; a stage without upstreams takes
    the lane of the warehouse it subscribes to. A stage whose upstream
    references are all dangling, or that subscribes to nothing, goes to the
    fallback lane. Warehouses always get a lane, even without stages.
  - Columns follow the subscription DAG: a stage sits strictly to the right of
    all of its upstream stages. Stages of the same rank share a column and are
    stacked within their lane.
  - Connectors are single segments from the right edge of the source node to
    the left edge of the destination node, expressed as a rotated rectangle.

Malformed graphs never fail the build: dangling references are dropped and
cycles are broken at the first stage reached in input order.
*/
package topology
