/*
Package promotions assembles the live promotion list of one stage.

A View seeds a cache with a one-shot list of the stage's promotions and keeps
it current with a watch stream, using the same reconciliation as every other
resource. Display concerns are applied on read only:

  - Compare orders rows for display (non-terminal first, then most recent,
    then by name). The cached order, which reflects arrival order, is never
    changed.
  - Annotate flags promotions with a pending abort request and replaces the
    shown status message, without touching the cached object.
*/
package promotions
