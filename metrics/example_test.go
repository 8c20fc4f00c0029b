package metrics_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/metrics"
)

func ExampleClassificationReport() {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	yPred := mat.NewVecDense(4, []float64{0, 1, 1, 1})

	report, err := metrics.ClassificationReport(yTrue, yPred)
	if err != nil {
		panic(err)
	}
	fmt.Print(report)
	// Output:
	//               precision    recall  f1-score   support
	//
	//            0       1.00      0.50      0.67         2
	//            1       0.67      1.00      0.80         2
	//
	//     accuracy                           0.75         4
	//    macro avg       0.83      0.75      0.73         4
	// weighted avg       0.83      0.75      0.73         4
}

func ExampleConfusionMatrix() {
	yTrue := mat.NewVecDense(5, []float64{1, 1, 1, 0, 0})
	yPred := mat.NewVecDense(5, []float64{1, 0, 1, 0, 1})

	cm, err := metrics.ConfusionMatrix(yTrue, yPred)
	if err != nil {
		panic(err)
	}
	fmt.Println(cm.Labels)
	fmt.Println(mat.Formatted(cm.Counts))
	// Output:
	// [0 1]
	// ⎡1  1⎤
	// ⎣1  2⎦
}
