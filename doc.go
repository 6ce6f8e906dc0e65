// Package pdv provides the engine of a single-register point of sale. It is
// designed to be local-first: every state change is written to plain JSON
// files that the operator can read, back up and query.
//
// The core functionalities include:
//   - Ledger: an append-mostly, newest-first record of sales, stock
//     adjustments and daily cash snapshots (see [Ledger]).
//   - Catalog: the products and their authoritative stock (see [Catalog]).
//   - Cart: the sale being prepared, kept consistent with the stock when it
//     changes under it (see [Cart]).
//   - Cash register: the daily float, cash sales and withdrawals derived from
//     the ledger, and the withdrawal protocol (see [Cashier]).
//   - Reports: sales per product and per product stock history.
//
// A [Session] composes them and is the entry point of the caixa command and
// of the HTTP API. Amounts are exact decimals, see [Money] and [Quantity].
//
// Writes are not awaited by the operations: they return a [Write] to wait
// on, and the in-memory state is always the reference.
package pdv
