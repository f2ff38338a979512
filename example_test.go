package pipeview_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pipeview"
	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/domain"
)

// ExampleNew_memory builds the topology of a small pipeline held in memory.
func ExampleNew_memory() {
	src := memory.NewSource()
	src.PutWarehouse("demo", domain.Warehouse{ObjectMeta: domain.ObjectMeta{Name: "main"}})

	dev := domain.Stage{ObjectMeta: domain.ObjectMeta{Name: "dev"}}
	dev.Spec.Subscriptions.Warehouse = "main"
	src.PutStage("demo", dev)

	for _, name := range []string{"qa", "uat"} {
		st := domain.Stage{ObjectMeta: domain.ObjectMeta{Name: name}}
		st.Spec.Subscriptions.UpstreamStages = []domain.StageSubscription{{Name: "dev"}}
		src.PutStage("demo", st)
	}

	viewer := pipeview.New(src)
	defer viewer.Close()

	sess, err := viewer.Pipeline(context.Background(), "demo")
	if err != nil {
		log.Fatal(err)
	}

	res := sess.Topology()
	fmt.Println("Order:", res.SortedStageNames())
	for _, c := range res.Connectors {
		fmt.Printf("%s: %s -> %s\n", c.Kind, c.From, c.To)
	}
	// Output:
	// Order: [dev qa uat]
	// subscription: main -> dev
	// upstream: dev -> qa
	// upstream: dev -> uat
}
