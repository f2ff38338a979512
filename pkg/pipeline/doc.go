/*
Package pipeline runs the live pipeline view of one project.

A Session seeds its stage and warehouse caches with a one-shot fetch, keeps
them current with one watch per resource kind, and recomputes the topology
after every applied event. It also owns the interaction state of the view
and routes user actions (select, approve, refresh, filter) to the mutation
collaborators.

Watches run only while the session is visible. Hiding the session cancels
them; showing it again starts over from a fresh fetch.
*/
package pipeline
