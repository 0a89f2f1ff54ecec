package main

import (
	"roasters-choice/internal/handlers"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	lambda.Start(handlers.RoastersChoice)
}
