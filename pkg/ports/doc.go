/*
Package ports defines the driven ports (interfaces) of the pipeline view.

These interfaces decouple the view from the API client, the transport and the
per-project settings storage, so the same sessions run against an in-memory
source in tests and against real backends in production.

# Key Interfaces

  - Fetcher: one-shot reads that seed reconciliation.
  - Streamer: watch streams of typed change events, scoped by project (and stage).
  - Mutator: fire-and-await operations (approve freight, refresh warehouse).
  - SettingsStore: the persisted per-project "hide subscriptions" flag and
    stage color assignment.
*/
package ports
