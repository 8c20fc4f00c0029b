package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース。
// 評価・解釈の関数はモデルを借用するだけで、状態を変更しない。
type Predictor interface {
	// Predict は入力データ (n_samples × n_features) に対するラベル列ベクトル (n_samples × 1) を返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilisticPredictor はクラス確率を出力できるモデルのインターフェース
type ProbabilisticPredictor interface {
	Predictor

	// PredictProba は各クラスの確率 (n_samples × n_classes) を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// LinearExplainable は係数ベクトルを公開する線形モデルのインターフェース。
// 二値分類では Coef は 1 × n_features の行を一つだけ持つ。
type LinearExplainable interface {
	// Coef は学習された係数 (n_rows × n_features) を返す
	Coef() [][]float64

	// InterceptValues は各係数行に対応する切片を返す
	InterceptValues() []float64
}

// Classifier は学習と予測の両方を持つ分類器
type Classifier interface {
	Fitter
	ProbabilisticPredictor

	// Classes は学習時に観測したクラスラベルを返す
	Classes() []int
}
