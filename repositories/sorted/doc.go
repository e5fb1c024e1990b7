// Package sorted implements a time-ordered repository over a backing store.
//
// Each repository named <name> keeps two structures:
//
//	items-data:<name>  hash        id -> encoded item
//	items:<name>       sorted set  id -> score
//
// Scores come from a score.Generator and strictly increase for one
// repository instance, so the sorted set orders items by insertion time.
// Reads go to the index first and then fetch payloads from the hash.
//
// Writes that touch both structures are sent as one pipelined batch. A batch
// is not a transaction: a failure part way through can leave a hash field
// without an index entry or the reverse. Index entries whose payload is
// missing read as absent and can be removed with PruneOrphans. Two
// concurrent Set calls for the same id race; the final score belongs to
// whichever batch reached the index last. Callers that need stronger
// guarantees must serialize writes per id.
//
// Names may not contain ':' so no index key can fall inside the key space of
// an unordered repository from package items.
package sorted
