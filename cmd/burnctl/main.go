// Command burnctl reads and feeds the burnrate ledgers from a terminal.
package main

func main() {
	Execute()
}
