// Command importdata loads spreadsheet rows into the record store.
package main

func main() {
	Execute()
}
