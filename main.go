/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/daffahilmyf/creature-catalog/cmd"

func main() {
	cmd.Execute()
}
