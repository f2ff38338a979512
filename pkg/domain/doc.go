/*
Package domain contains the core domain models of the pipeline view.

It defines the delivery pipeline resources read by the view (Stages,
Warehouses, Freight and Promotions) and the typed change events delivered by
a watch stream. The package is kept pure and free of I/O.

# Key Entities

  - Stage: a deployment target subscribing to a Warehouse or to upstream Stages.
  - Warehouse: a root resource producing Freight.
  - Freight: a versioned artifact bundle moving through Stages.
  - Promotion: a request to move one Freight into one Stage.
  - Event: an ADDED, MODIFIED, DELETED or ERROR notification about one object.
*/
package domain
