/*
Package pipeview keeps a live, laid-out view of a delivery pipeline: the warehouses that produce freight, the stages that
subscribe to them or to each other, and the promotions moving freight into each stage.

# Concept

A Viewer reads from a Source, an API client that can list resources once and then stream their changes. For every project it
opens a pipeline session that seeds two caches (stages and warehouses) with a one-shot fetch and keeps them current by applying
ADDED, MODIFIED and DELETED events in arrival order. Each applied event recomputes the topology: lanes per warehouse, columns in
dependency order, connector segments, a bounding box and a stable color per stage.

Promotion lists work the same way, one watch per stage, and are projected into display rows at read time.

# Usage

	src := memory.NewSource()
	src.PutWarehouse("demo", domain.Warehouse{ObjectMeta: domain.ObjectMeta{Name: "main"}})
	src.PutStage("demo", stage)

	viewer := pipeview.New(src, pipeview.WithSettings(redis.New("localhost:6379", "", 0)))
	defer viewer.Close()

	sess, err := viewer.Pipeline(ctx, "demo")
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range sess.Topology().Nodes {
		fmt.Println(n.Name, n.X, n.Y)
	}

# Packages

  - pkg/reconcile: the watch loop that applies events to a cache and cancels exactly once.
  - pkg/topology: the pure layout function and the settings-backed Builder.
  - pkg/interaction: the promote / promote-subscribers / manual-approval selection machine.
  - pkg/promotions: the per-stage promotion list and its display ordering.
  - pkg/adapters: memory, redis, YAML fixture and HTTP adapters.
*/
package pipeview
