// Command handmeasure measures a hand held up to a webcam inside a guide box
// and saves the captured frame.
package main

func main() {
	Execute()
}
