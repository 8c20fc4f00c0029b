// Package diagnosis provides the helpers of a tabular binary classification
// workflow, built around the breast cancer diagnostic CSV (id, diagnosis and
// numeric feature columns).
//
// The workflow prepares the data, trains a classifier, evaluates it on a
// held-out set and explains its decisions.
//
// # Quick Start
//
//	ds, err := dataset.LoadData("data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	split, err := model_selection.SplitData(ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	XBal, yBal, err := imbalance.BalanceClasses(split.XTrain, split.YTrain, imbalance.SamplingSMOTE, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	XTrain, XTest, err := preprocessing.ScaleFeatures(XBal, split.XTest, preprocessing.ScalingStandard)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	clf := linear_model.NewLogisticRegression()
//	if err := clf.Fit(XTrain, yBal); err != nil {
//	    log.Fatal(err)
//	}
//	_ = evaluation.PrintClassificationReport(ctx, os.Stdout, clf, XTest, split.YTest)
//
// # Packages
//
//   - dataset: CSV loading, label encoding and the column-named Dataset matrix
//   - model_selection: stratified train/test split
//   - imbalance: SMOTE and ADASYN oversampling
//   - preprocessing: StandardScaler and MinMaxScaler
//   - sklearn/linear_model: LogisticRegression
//   - metrics: confusion matrix, classification report, AUC and log loss
//   - evaluation: misclassified rows, confusion matrix chart, printed report
//   - interpret: coefficient ranking, Shapley value explainers and charts
//   - chart: chart descriptions rendered with gonum/plot
//   - config: YAML configuration of the diagnose command
//   - core/model: Predictor, LinearExplainable and related interfaces
//   - core/parallel: row-wise parallel processing
//   - pkg/errors, pkg/log: typed errors, warnings and structured logging
//
// The cmd/diagnose command runs the whole pipeline from a YAML file.
package diagnosis
