package main

import (
	"github.com/sirupsen/logrus"

	"github.com/bobuhiro11/rvstart/flag"
)

func main() {
	if err := flag.Parse(); err != nil {
		logrus.Fatal(err)
	}
}
