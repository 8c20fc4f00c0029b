package model

import "gonum.org/v1/gonum/mat"

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Resampler は学習データのクラス分布を調整するインターフェース。
// テストデータに対して呼び出してはならない。
type Resampler interface {
	// FitResample は (X, y) から再サンプリングされた (X', y') を返す
	FitResample(X mat.Matrix, y *mat.VecDense) (mat.Matrix, *mat.VecDense, error)
}
