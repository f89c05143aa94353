/*
Package kvtree implements persistent nested lists and maps on top of an
ordered key-value store (Bolt, or a transient in-memory store).

A container never holds data in memory. *List and *Map are handles, a pair
of a DB and a flat key; every operation reads or writes the store directly.

# Technical Details

**Flat keys.**
Every value lives in its own record. A child's key is its parent's key,
a slash, and the child's selector: the decimal index for list elements, the
field name for map fields. The slash is reserved and rejected in names.
Everything below a container shares the prefix "name/", so one prefix scan
finds a whole subtree.

**Container descriptors.**
The record at a container's own key holds a single byte, "l" for a list or
"d" for a map. Reading such a record yields a handle rather than a scalar.

**List counter.**
A non-empty list stores its length at "name/count". Elements 0..count-1
exist, nothing at or beyond count does. An absent counter means an empty list.

**Batches.**
Every mutating call runs in one write transaction. Replacing or removing a
container deletes its descriptor and its whole subtree in the same batch as
the write, so no orphaned records are left behind.

## Scalar encoding

A scalar is a tag byte followed by the payload:

1. "s": the string bytes.
2. "i": the integer in little-endian two's complement, (bitlen+7)/8+1 bytes
   long. Integers of any size round-trip; those outside the int64 range
   decode into a *big.Int.
3. "b": one byte, 0 or 1.
4. "n": null, no payload.
*/
package kvtree
