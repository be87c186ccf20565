// Command questlog resolves game titles to completion time, critic score,
// and store price from the terminal.
package main
