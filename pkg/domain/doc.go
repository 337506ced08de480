/*
Package domain contains the core types shared by the vivarium engine.

It defines the contract between the engine and the models it runs, and is kept
free of I/O so every other package can depend on it.

# Key Entities

  - Path: an address in the state tree, with ".." stepping to the parent.
  - Process: a computational unit declaring ports and computing updates.
  - Processes / Topology / Ports: the blueprint placing processes in the tree and
    wiring each port to a path.
  - Generate / Divide: structural directives carried inside an Update.
  - Envelope: what the engine pushes to emitters.
*/
package domain
